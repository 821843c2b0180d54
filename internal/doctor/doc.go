// Package doctor diagnoses a hookproxy installation and repairs what it can.
//
// The checks fall into four categories:
//
//   - [CategorySetup]: git is installed, the configured shell resolves and,
//     optionally, the login shell environment loads.
//
//   - [CategoryConfig]: the global config and the repository's
//     .hookproxy.toml parse.
//
//   - [CategoryHistory]: the run history file is readable.
//
//   - [CategorySession]: proxy session directories left behind by processes
//     that were killed before they could clean up.
//
// # Usage
//
//	issues, err := doctor.Run(ctx, doctor.Options{...})       // check only
//	issues, err := doctor.Run(ctx, doctor.Options{Fix: true}) // check and fix
//
// Each [Issue] carries a description and, when it can be repaired
// automatically, a [FixAction].
package doctor
