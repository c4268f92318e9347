/*
Package barter defines interfaces used throughout the app, such as: storage,
transactions, handlers and authentication conditions. It also contains the
derived address primitive used to create keyless principals owned by an
extension.

Look into this package to get a brief overview of the building blocks. The
escrow itself lives in x/escrow and the asset ledger in x/token.
*/
package barter
