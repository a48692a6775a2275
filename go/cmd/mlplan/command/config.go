/*
Copyright 2026 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package command

import (
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/warmchang/citus/go/vt/vterrors"
)

// Config prints the settings the planner runs with.
var Config = &cobra.Command{
	Use:   "config",
	Short: "Prints the effective planner settings as YAML.",
	Args:  cobra.NoArgs,
	RunE:  commandConfig,
}

func commandConfig(cmd *cobra.Command, args []string) error {
	out, err := yaml.Marshal(config)
	if err != nil {
		return vterrors.Wrap(err, "encoding settings")
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

func init() {
	Root.AddCommand(Config)
}
