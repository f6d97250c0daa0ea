// Package linkinfo computes the per-entry descriptors the engine works
// from: what a package entry is and where it should be linked
// (DescribeSource), and what currently exists at a target path
// (ProbeTarget).
package linkinfo
