// Package driven lists what the core needs from the outside world:
// project persistence, settings storage, scheduler state and file
// change notifications.
//
// ProjectStore and ConfigStore must always be supplied. SchedulerStore
// and SourceWatcher may be nil, in which case scheduled backups and live
// deploys report ErrNotImplemented instead of running.
//
// Nothing here may import an adapter package.
package driven
