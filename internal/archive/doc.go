// Package archive unpacks support-bundle archives.
//
// sosreport archives are tarballs compressed with xz (current releases),
// bzip2 (older releases), gzip or zstd. TarExtractor detects the
// compression from the file's magic bytes rather than its extension,
// because bundles are frequently renamed when attached to support cases.
//
// Extraction never writes outside the destination directory: entries with
// absolute paths or ".." components abort the extraction, and symbolic
// links pointing outside the destination are skipped.
package archive
