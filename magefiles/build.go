//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Downloads the modules and builds the testbed binary.
func (Build) Engine() error {
	if err := goModDownload(); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/prism", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Builds with assertions enabled.
func (Build) Debug() error {
	if _, err := executeCmd("go", withArgs("build", "-tags", "debug", "-o", "bin/prism-debug", "."), withStream()); err != nil {
		return err
	}
	return nil
}
