//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs every test of the module.
func (Test) All() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the tests with assertions enabled and the race detector on.
func (Test) Debug() error {
	if _, err := executeCmd("go", withArgs("test", "-race", "-tags", "debug", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}
