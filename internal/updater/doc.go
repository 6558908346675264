// Package updater tells users when a newer release of the CLI is published to
// the npm registry. Checks are cached for a day in the CLI home directory and
// refreshed in the background, so startup never waits on the network.
package updater
