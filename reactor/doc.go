// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides a single-threaded, level-triggered readiness
// dispatcher with interchangeable poll(2) and select(2) backends.
//
// Callbacks run one at a time on the goroutine that calls Run and may
// register, deregister, reconfigure or force-wake any descriptor, their own
// included. Run returns once the last registration has been removed.
// Programming errors (duplicate registration, operations on unknown
// descriptors) and unexplained wait failures are fatal.
package reactor
