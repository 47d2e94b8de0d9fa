// Command galaxyctl inspects and maintains a Habit Galaxy server database.
package main

import "github.com/everforgeworks/habit-galaxy/cmd/galaxyctl/root"

func main() {
	root.Execute()
}
