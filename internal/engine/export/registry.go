package export

import (
	"sync"

	"go.trai.ch/bake/internal/core/domain"
)

// Job is one baking job: a single converter run shared by every request with the
// same fingerprint.
type Job struct {
	key    domain.Fingerprint
	format domain.Format
	path   string

	// queue is guarded by the owning registry's mutex.
	queue []*Handle
}

// Registry maps fingerprints to in-flight jobs. Attach is an atomic check-and-insert,
// so at most one job exists per fingerprint at any time.
type Registry struct {
	mu   sync.Mutex
	jobs map[domain.Fingerprint]*Job
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		jobs: make(map[domain.Fingerprint]*Job),
	}
}

// Attach queues h on the job registered for key, creating the job when there is none.
// isNew reports whether the caller created the job and must start its generation.
func (r *Registry) Attach(key domain.Fingerprint, h *Handle) (job *Job, isNew bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if job, ok := r.jobs[key]; ok {
		job.queue = append(job.queue, h)
		return job, false
	}

	job = &Job{
		key:   key,
		queue: []*Handle{h},
	}
	r.jobs[key] = job
	return job, true
}

// Len returns the number of in-flight jobs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// next pops the front handle of job's queue. When the queue is empty, onEmpty runs
// and the job is removed, both while the lock is held, so no request can attach to
// a job that stopped draining.
func (r *Registry) next(job *Job, onEmpty func()) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(job.queue) > 0 {
		h := job.queue[0]
		job.queue[0] = nil
		job.queue = job.queue[1:]
		return h, true
	}

	if onEmpty != nil {
		onEmpty()
	}
	r.remove(job)
	return nil, false
}

// remove deletes the entry of job. An entry already replaced by a newer job for the
// same fingerprint is left alone. The caller holds r.mu.
func (r *Registry) remove(job *Job) {
	if r.jobs[job.key] == job {
		delete(r.jobs, job.key)
	}
}
