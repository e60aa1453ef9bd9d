// SPDX-License-Identifier: MPL-2.0

package main

import cmd "hardenctl/cmd/hardenctl"

func main() {
	cmd.Execute()
}
