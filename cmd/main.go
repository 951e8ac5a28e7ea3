// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/elastic/storefront-search/cmd/serve"
)

func main() {
	root := &cobra.Command{
		Use:   "storefront-search",
		Short: "Storefront product query engine backed by Elasticsearch",
	}
	root.AddCommand(serve.Command())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
