// Package prompt provides simple interactive prompts.
//
// [Confirm] asks a yes/no question, defaulting to no. It is used when a
// hook fails and the configuration asks the user whether to carry on.
package prompt
