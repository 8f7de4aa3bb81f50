// Package watch provides an fsnotify-based implementation of
// driven.SourceWatcher.
//
// Directories are watched recursively. Events are collected until the
// tree has been quiet for the debounce period and then reported as one
// batch. A token bucket caps how many batches are reported per minute,
// so an editor saving in a loop cannot trigger a redeploy storm.
package watch
