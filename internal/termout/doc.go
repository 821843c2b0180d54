// Package termout keeps bounded, replayable terminal output for git
// operations and the hooks they run.
//
// Three pieces build on each other:
//
//   - [Buffer] is a FIFO of text chunks capped at a number of characters.
//     When it overflows, characters are dropped from the oldest chunk first;
//     a chunk is only partially trimmed when that is enough.
//   - [Source] is the output of a single operation. A subscriber first gets
//     everything buffered so far as one replay batch, then each new chunk.
//   - [Broadcaster] merges several sequential sources into one view. It tells
//     its consumer that output exists on the first push only, and replays its
//     own buffer chunk by chunk to every subscriber before delivering live
//     output.
//
// Live subscribers always receive chunks untrimmed; capacity only limits what
// is kept for subscribers that attach later.
package termout
