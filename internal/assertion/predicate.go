package assertion

import (
	"fmt"
	"strings"

	"netintent/internal/domain"
)

// Failure describes a failed expectation
type Failure struct {
	Key       string
	Message   string
	Available []string
}

func (f *Failure) Error() string {
	return f.Message
}

func failf(key, format string, args ...any) *Failure {
	return &Failure{Key: key, Message: fmt.Sprintf(format, args...)}
}

// Exists requires key to be present in set. The failure lists the keys that
// were found.
func Exists(set domain.RecordSet, key string) *Failure {
	if _, ok := set[key]; ok {
		return nil
	}
	available := set.Keys()
	return &Failure{
		Key:       key,
		Available: available,
		Message:   fmt.Sprintf("%s not found, available: [%s]", key, strings.Join(available, ", ")),
	}
}

func neighbor(set domain.RecordSet, id string) (domain.NeighborRecord, *Failure) {
	if f := Exists(set, id); f != nil {
		return domain.NeighborRecord{}, f
	}
	rec, ok := set[id].(domain.NeighborRecord)
	if !ok {
		return domain.NeighborRecord{}, failf(id, "%s is %T, not a neighbor record", id, set[id])
	}
	return rec, nil
}

func ping(set domain.RecordSet, destination string) (domain.PingRecord, *Failure) {
	if f := Exists(set, destination); f != nil {
		return domain.PingRecord{}, f
	}
	rec, ok := set[destination].(domain.PingRecord)
	if !ok {
		return domain.PingRecord{}, failf(destination, "%s is %T, not a ping record", destination, set[destination])
	}
	return rec, nil
}

// NeighborFull requires the neighbor to be in the Full state
func NeighborFull(set domain.RecordSet, id string) *Failure {
	rec, f := neighbor(set, id)
	if f != nil {
		return f
	}
	if !rec.IsFull {
		return failf(id, "neighbor %s is not full, state %q", id, rec.State)
	}
	return nil
}

// NeighborInterface requires the neighbor to be reached over expected
func NeighborInterface(set domain.RecordSet, id, expected string) *Failure {
	rec, f := neighbor(set, id)
	if f != nil {
		return f
	}
	if rec.Interface != expected {
		return failf(id, "neighbor %s is on %s, expected %s", id, rec.Interface, expected)
	}
	return nil
}

// PingSuccess requires at least one reply
func PingSuccess(set domain.RecordSet, destination string) *Failure {
	rec, f := ping(set, destination)
	if f != nil {
		return f
	}
	if !rec.Success {
		return failf(destination, "ping to %s failed (%d/%d received)", destination, rec.PacketsReceived, rec.PacketsTransmitted)
	}
	return nil
}

// PingNoLoss requires every packet to be answered
func PingNoLoss(set domain.RecordSet, destination string) *Failure {
	rec, f := ping(set, destination)
	if f != nil {
		return f
	}
	if rec.PacketLoss != 0 {
		return failf(destination, "lost %d packets pinging %s", rec.PacketLoss, destination)
	}
	return nil
}

// PingMaxLoss requires packet loss to be at most limit
func PingMaxLoss(set domain.RecordSet, destination string, limit int) *Failure {
	rec, f := ping(set, destination)
	if f != nil {
		return f
	}
	if rec.PacketLoss > limit {
		return failf(destination, "lost %d packets pinging %s, max allowed %d", rec.PacketLoss, destination, limit)
	}
	return nil
}
