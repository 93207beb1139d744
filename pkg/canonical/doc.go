// Package canonical turns free-text constituency and state names into the
// canonical tokens used as exact-match join keys.
//
// Canonicalization removes parenthetical annotations, detects and strips a
// trailing bye-election marker, replaces "&" with "and", folds diacritics,
// keeps ASCII letters only, collapses whitespace, uppercases, and finally
// substitutes known spelling variants through a static alias table:
//
//	c, _ := canonical.New(canonical.DefaultConfig())
//	c.String("Bardhaman - Durgapur (SC)")    // "BARDHAMAN DURGAPUR"
//	c.String("BURDWAN-DURGAPUR")             // "BARDHAMAN DURGAPUR"
//	c.Key("Ananthapur", "Andhra Pradesh")    // "ANANTAPUR:ANDHRA PRADESH"
//
// A bye-election replacement constituency resolves to the same key as its
// regular-election predecessor. The marker is reported on Name.ByeElection
// and never changes the key.
package canonical
