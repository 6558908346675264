// Package scaffold materializes a template into a project directory. It powers
// the "dapp init" command: it checks the target directory, collects project
// details through a Prompter, makes sure the template package is cached,
// copies and renders the template tree, and finally runs the template's
// install and start commands.
package scaffold
