// Modelrouter CLI entry point
//
// Modelrouter (mr) classifies LLM chat-completion requests against ordered
// predicate rules and routes the resulting label to a concrete target model,
// with hot reload of the routing file.
package main

import "github.com/jbctechsolutions/modelrouter/internal/presentation/cli/commands"

func main() {
	commands.Execute()
}
