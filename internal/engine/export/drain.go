package export

// drain delivers the outcome of job to its queued handles, one at a time in arrival
// order, then removes the job and deletes its artifact.
//
// On failure every handle's callback receives genErr and no transfer is attempted.
// On success each handle gets a fresh read of the artifact, except handles canceled
// before their turn, which are skipped without a callback.
func (e *Exporter) drain(job *Job, genErr error) {
	onEmpty := func() { cleanup(e.logger, job.path) }

	for {
		h, ok := e.registry.next(job, onEmpty)
		if !ok {
			return
		}

		if genErr != nil {
			h.finish(genErr)
			continue
		}

		skipped, err := h.transfer(job.path)
		switch {
		case skipped:
			e.logger.Info("handle skipped", "job", job.key.JobID())
		case err != nil:
			e.logger.Warn("transfer failed", "job", job.key.JobID(), "error", err.Error())
		}
	}
}
