// Package domain defines the core types shared across netintent.
//
// # Records
//
// Command output collected from devices is normalized into records keyed by a
// natural key. NeighborRecord describes an OSPF adjacency keyed by router id;
// PingRecord describes a ping toward a destination keyed by that destination.
// Both are built through constructors that derive their computed fields, so
// IsFull always follows State and Success/PacketLoss always follow the packet
// counts.
//
// # Intended configuration sync
//
// RenderedConfig, RemoteFileState, SyncDecision and SyncOutcome describe one
// attempt to bring the stored intended configuration of a device in line with
// its rendered template. SyncError carries the failure kind along with the
// repository status and body when there is one.
//
// # Checks
//
// CheckResult and CheckReport hold the verdicts produced by running a test
// catalog against live devices.
package domain
