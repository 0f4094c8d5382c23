// Package storage persists binary assets, primarily article images
// mirrored from stock photo providers so posts do not hotlink third-party
// CDNs.
//
// The Storage interface is reader-based: callers stream bytes in and get
// back an Object with the public URL to embed. Two backends are provided:
//
//   - LocalStorage writes under a base directory and serves files from a
//     configurable URL prefix. All operations are confined to the base
//     directory to prevent path traversal.
//   - S3Storage targets Amazon S3 and S3-compatible services (MinIO,
//     Cloudflare R2) via the AWS SDK v2.
package storage
