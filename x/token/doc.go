/*
Package token is a minimal fungible token ledger.

A Mint describes a token kind and the authority allowed to issue it. An
Account holds an amount of exactly one mint and is owned by exactly one
address. The associated account of (owner, mint) lives at an address derived
from both, so anyone can compute it and bootstrap it for the owner.

Every stored object holds a native balance (a Purse) that pays for the space
it occupies. The reserve is paid when the object is created and returned to
a chosen address when it is closed. Reserve sizes are configured with gconf
under the "token" package.

Only the owner of an account can move its funds, and the owner must be
authorized in the context. The owner may be a signer or a derived address
authorized by its extension.
*/
package token
