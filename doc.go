// Package pipebase describes data-processing pipelines and orders their
// work.
//
// A Pipeline is a sequence of TaskDefs, each declaring an explicit
// ConnectionSet of input and output roles. Pipeline.Graph builds the
// bipartite task/dataset-type graph (see the pgraph package) used to resolve
// dataset type definitions and to order tasks.
//
// A QuantumGraph groups concrete execution units (quanta) by task; Traverse
// streams them in dependency order with per-quantum IDs and dependency sets,
// which is the contract execution schedulers consume:
//
//	qg := pipebase.NewQuantumGraph(groups...)
//	tr, err := qg.Traverse()
//	for tr.Next() {
//	    data := tr.Quantum() // data.Dependencies all < data.QuantumID
//	}
//	err = tr.Err()
//
// This package performs no I/O: dataset selection, task execution, and the
// data repository are external collaborators consumed through narrow
// interfaces.
package pipebase
