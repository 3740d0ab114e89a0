package core

import (
	"path"
	"regexp"
)

// Correction artifact file names encode their channel. This is an implicit
// protocol between correction producers and this pipeline, kept here as an
// explicit parsing contract:
//
//	<group>_Illum<Channel>.<ext>
//	<group>_Cycle<NN>_Illum<Channel>.<ext>   (cycle-resolved corrections)
var (
	illumCyclePattern = regexp.MustCompile(`^(.+?)_Cycle(\d+)_Illum(.+?)\.([A-Za-z0-9]+)$`)
	illumPattern      = regexp.MustCompile(`^(.+?)_Illum(.+?)\.([A-Za-z0-9]+)$`)
)

// IllumRef is a parsed correction artifact file name.
type IllumRef struct {
	Group   string // producer's group id prefix, e.g. the plate
	Cycle   string // zero-padded cycle digits, empty for non-cycle artifacts
	Channel string
}

// ParseIllumName parses the base name of a correction artifact file. A name
// that does not match either form returns ok=false; callers treat such files
// as absent rather than failing the group.
func ParseIllumName(file string) (IllumRef, bool) {
	name := path.Base(file)
	if m := illumCyclePattern.FindStringSubmatch(name); m != nil {
		return IllumRef{Group: m[1], Cycle: m[2], Channel: m[3]}, true
	}
	if m := illumPattern.FindStringSubmatch(name); m != nil {
		return IllumRef{Group: m[1], Channel: m[2]}, true
	}
	return IllumRef{}, false
}
