/*
Package ports defines the driven ports (interfaces) of the draft wizard.

These interfaces decouple the persistence controller from concrete storage,
allowing drafts to live in memory, on the local filesystem, or in Redis.

# Key Interfaces

  - DraftStore: durable key-value storage for serialized drafts.
  - DistributedLocker: serializes writes to a key shared between processes.
*/
package ports
