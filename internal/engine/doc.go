// Package engine is the scheduler of the clock. It turns settings into a
// running refresh loop: every tick it divides the current day into planetary
// hours, locates the active hour, rotates focus-area content, resolves the
// citations of that content and publishes the assembled snapshot.
//
// An Engine starts Uninitialized and becomes Running after the first valid
// Configure. Ticks are serialized; cursor state is only committed after a
// snapshot was assembled, so a failing tick leaves the engine unchanged.
package engine
