/*
Package escrow implements a two-party atomic swap.

The maker locks an amount of one token (mint A) in a vault and names the
amount of another token (mint B) it wants in return. A taker receives the
whole vault by paying exactly that amount to the maker. Until a taker shows
up, the maker may take the funds back with a refund.

Every escrow lives at an address derived from the maker and a maker chosen
seed. The vault is the associated token account of that address for mint A.
No key exists for either address: only this extension can authorize the
vault, by recomputing the escrow address from the stored record.

Make, Take and Refund each run as a single atomic unit. Take and Refund both
remove the record, so at most one of them succeeds for a given escrow.
*/
package escrow
