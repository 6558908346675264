// Package prompt collects answers for "dapp init" from a line-oriented
// terminal: yes/no confirmations, numbered menus, and free-text questions
// with defaults. When input is not interactive, defaults are taken without
// reading anything.
package prompt
