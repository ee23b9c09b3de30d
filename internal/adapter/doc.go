// Package adapter runs commands on network devices.
//
// Executor is the single capability the rest of netintent depends on: given a
// device and an ordered list of commands, return one output per command in
// the same order. A failure to reach the device is a connection error; a
// command that fails once connected is recorded on its output and the
// remaining commands still run.
//
// # SSH
//
// SSHExecutor opens one client per device and one session per command. It
// authenticates with a private key, a password, or both, and verifies host
// keys against a known_hosts file when one is configured. A device command
// prefix (for example "sr_cli -d -- ") is prepended on the wire only.
//
// # Replay
//
// ReplayExecutor answers from recorded output keyed by host and command. It
// backs offline check runs and tests.
package adapter
