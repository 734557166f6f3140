// Package process defines the process record and its state machine:
//
//	READY <-> RUNNING        dispatch / return
//	RUNNING -> BLOCKED       Block
//	RUNNING -> SLEEPING      Sleep
//	BLOCKED -> READY         Unblock
//	SLEEPING -> READY        Wake
//	any -> ZOMBIE            Kill or work failure (terminal)
package process
