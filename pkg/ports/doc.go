/*
Package ports defines the driven ports (interfaces) for the Turing machine engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various program sources and snapshot storage backends.

# Key Interfaces

  - ProgramLoader: Responsible for loading program text (e.g., from a directory or memory).
  - SnapshotStore: Responsible for persisting and loading machine Snapshots per session.
  - DistributedLocker: Provides distributed locking so replicas never step one session concurrently.
*/
package ports
