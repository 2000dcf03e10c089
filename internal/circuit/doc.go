// Package circuit holds delay instructions and the narrow instruction
// container they live in.
//
// The container exists to exercise the duration model end to end: it
// owns a symbol table (the arena) of stretches and parameters, fans one
// binding map out to every parameterized instruction, and duplicates or
// serializes itself without losing symbol identity.
//
// Symbol identity is by name. Every Symbol leaf inside every Delay refers
// to a table entry through its name, so binding "a" once updates all
// occurrences, including those in a DeepCopy or a decoded circuit.
//
// Concurrency: Copy, DeepCopy, Equal, the codecs and Fingerprint only read
// their receiver and are safe to call from several goroutines at once.
// Append, Delay, AddStretch and AssignParametersInPlace mutate and need
// external synchronization.
package circuit
