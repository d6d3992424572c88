// Package ioutils provides file system and image helpers shared by the
// cache, the CLI exporters and the artwork downloader.
//
// # File Operations
//
//	// Write a file, creating parent directories
//	err := ioutils.WriteFile("out/top.m3u", []byte("#EXTM3U\n"))
//
//	// Replace a file without exposing partial writes
//	err := ioutils.WriteFileAtomic("data/cache/tracks-00ff.cache", payload)
//
// # Filename Sanitization
//
//	safe := ioutils.SanitizeFileName("AC/DC: Live") // Returns "AC_DC_ Live"
//
// # Image Processing
//
// The ImageService turns downloaded cover art into JPEG thumbnails:
//
//	svc := ioutils.NewImageService()
//	thumb, _ := svc.ResizeImage(ctx, imageData, 300, 300)
package ioutils
