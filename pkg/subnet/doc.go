// Package subnet finds live devices on a /24 by probing every address with a
// bounded worker pool and attaching hardware addresses from the resolution
// cache.
//
// Addresses already present in the cache are probed first, followed by the
// rest of .0 to .254. The cache is read once before the sweep and once more
// after it; the second read fills hardware addresses the operating system
// learned while the sweep was probing. Whether that happens depends on the
// platform and the network, so devices may still end up without a MAC.
package subnet
