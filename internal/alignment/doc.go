// Package alignment maps synthesized-speech word timestamps back onto the
// script that produced them.
//
// Two operations make up the package:
//   - FindTitleEndTime walks the raw token stream and reports when the spoken
//     title finishes, using a greedy forward-only match against the normalized
//     title words.
//   - Merger.MergeForSubtitles folds short function words into the word that
//     follows them and trims punctuation tokens so captions read naturally.
//
// The matcher must always see the raw stream. Merging changes token
// boundaries, so Align runs the two steps in the required order and slices the
// merged captions at the title boundary.
package alignment
