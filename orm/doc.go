/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of object.
* It has a primary index and may possess secondary indexes.
* Easy queries for one and iteration.

Models decide their own binary representation. The orm only stores the bytes
returned by Marshal.
*/
package orm
