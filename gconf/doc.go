/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension keeps a single configuration object under the "_c:<package>"
key. The object is loaded from the "conf" section of the genesis file,
validated and stored using the amino binary encoding.

Not being able to get a configuration value is a critical condition for the
application. Handlers return the error to the caller unchanged.
*/
package gconf
