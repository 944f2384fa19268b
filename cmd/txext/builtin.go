package main

// Built-in extensions register themselves with the default registry.
import (
	_ "github.com/felixgeelhaar/txext/internal/extensions/rawtext"
)
