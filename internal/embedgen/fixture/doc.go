// Package fixture embeds testdata/tree through a $PACKAGE_DIR literal.
package fixture

//go:generate go run github.com/CageChen/anydir/cmd/embeddir ${DOLLAR}PACKAGE_DIR/testdata/tree
