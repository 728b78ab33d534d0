package abi

// ClassID and ProtocolID are arena indices (Design Notes: "Class as cyclic
// graph" — the resolved class/protocol graph is represented as an
// append-only arena of records indexed by small integers; every pointer in
// the original ABI becomes an index here, and the arena never shrinks, so
// an ID stays valid for the life of the process).
type ClassID int32

// NoClassID marks an unset or not-yet-resolved class reference.
const NoClassID ClassID = -1

type ProtocolID int32

// NoProtocolID marks an unset protocol reference.
const NoProtocolID ProtocolID = -1
