// Package lock provides the mutual exclusion guards used by the
// memoization engine.
//
// Two implementations are included. KeyedMutex hands out per-key guards
// backed by in-process mutexes and is sufficient when all contending
// callers live in one process. FifoMutex coordinates across independent
// processes through a shared directory: waiters announce themselves with
// uniquely named lock files, acquisition order follows file creation
// time, and lock files that outlive a configured age are reclaimed by
// any waiter so a crashed holder cannot wedge the queue.
//
// FifoMutex requires no shared memory, flock, or network service — only
// a directory every participant can create, list, stat, and delete files
// in. Filesystems with weakly consistent metadata (some network mounts)
// are outside its support envelope.
package lock
