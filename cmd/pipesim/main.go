// Command pipesim runs a pipe network scenario from a YAML configuration.
//
//	pipesim run --config scenario.yaml --ticks 500
//	pipesim init-config scenario.yaml
package main

func main() {
	Execute()
}
