// Package compression implements Global-Base-Delta-Immediate (GBDI) compression
// of the loadable contents of an executable.
//
// GBDI comes from hardware cache compression research. Memory is viewed as a
// sequence of 32-byte cache lines, each holding four 64-bit words. A handful of
// "global bases" is chosen from statistics over the whole image, and every word
// is then stored as a reference to one of those bases plus the (hopefully much
// smaller) residual left after subtracting it. Here we apply the same idea
// offline to static binaries.
//
// Compression happens in three stages:
//
//  1. Extraction. Each segment is cut into 32-byte chunks, the final partial
//     chunk is padded with null bytes, and the result is read as little-endian
//     64-bit words. Chunks never span two segments.
//  2. Base selection. We take the differences between consecutive words, sort
//     them, and walk the runs of equal values from smallest to largest. Every
//     run strictly longer than the longest run seen so far becomes a base,
//     until we have as many bases as we were asked for. This is a greedy
//     record-breaking scan, *not* a top-K by frequency; changing it would change
//     the encoded output of existing inputs.
//  3. Encoding. For every word we try subtracting each base it's not smaller
//     than and keep the smallest result. If nothing beats the raw value, the
//     word is stored as-is. Each word becomes a record of two ULEB128 integers:
//     the base reference (0 for "no base", k for base k-1) and the residual.
//
// For example, a single chunk of all null bytes gives the words [0 0 0 0], the
// deltas [0 0 0], and the base set [0]. Subtracting base 0 from 0 doesn't give
// anything smaller than the raw value, so every word is stored as the two bytes
// 00 00.
//
// A record takes at most 11 bytes (one for the reference, ten for the residual)
// so the compressed stream can be larger than the input for random data.
// Output buffers are always sized for that worst case.
package compression
