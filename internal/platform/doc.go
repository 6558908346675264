// Package platform smooths over file permission differences between
// operating systems for the files the CLI writes into the template store and
// into new projects.
package platform
