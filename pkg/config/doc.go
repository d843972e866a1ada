// Package config loads the runtime configuration document.
//
// A document names the devices of one run, their classes and parameters,
// and the requested connections between their signals:
//
//	runtime:
//	  data_dir: /var/lib/mash-logic
//	  max_rounds: 64
//	  shutdown_timeout: 5s
//	devices:
//	  - name: const1
//	    class: logic/constant
//	    params: {value: true}
//	  - name: inv1
//	    class: logic/inverter
//	connections:
//	  - from: const1/out
//	    to: [inv1/in]
//
// Signal references accept numeric IDs ("inv1/0") and signal names
// ("inv1/in"). Names are resolved once the devices are built.
//
// Unknown keys are rejected. Validate reports every problem at once.
package config
