// Package build holds build-time information.
package build

// Version is the bake release reported by `bake version`. Release builds set it with
// -ldflags "-X go.trai.ch/bake/internal/build.Version=<tag>".
var Version = "dev"
