// Package services implements the driving ports.
//
// BackupEngine does all filesystem copying. Every source and destination
// path passes through PathValidator before it is touched.
package services
