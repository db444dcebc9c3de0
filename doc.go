/*
go-cvtrack provides a typed Go surface over single object visual trackers
(Boosting, MIL, KCF, MedianFlow, TLD, MOSSE and CSRT) and a MultiTracker that
drives a set of them with one Update call.

Trackers are created from a Backend.  The opencv sub package wraps the native
OpenCV trackers through gocv, whilst the tracker sub package contains pure Go
implementations of every variant that need no cgo.

Which variants exist depends on the version of the tracking library, see
Available(), Supported() and QueryCapabilities() for the capability gate that
is consulted before a tracker is constructed.

Every tracker follows the same lifecycle: New() returns an Uninitialized
tracker, Init() seeds it with a frame and bounding region, Update() returns the
new region or nil when the target is lost, and Clear() returns it to the
Uninitialized state.

See example code and usage in the example subdirectory.
*/
package cvtrack
