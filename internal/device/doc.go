// Package device locates removable media carrying a pedal configuration
// tree and watches for it coming and going.
//
// A configuration root is identified by a marker directory: the scanner
// walks the platform's mount directories and looks for
// <mount>/<volume>/<marker>. Scanning commits to the first mount directory
// that opens: if that directory holds no marker, the scan reports no
// device rather than trying the next one. The behavior is long-standing
// and relied upon in the field, so it is kept; the doctor surfaces it when
// it bites.
//
// Scans are bounded by context so a wedged mount cannot stall startup.
// The watcher layers fsnotify events and a polling fallback on top of the
// scanner to drive hotplug workflows.
package device
