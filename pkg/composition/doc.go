// Package composition defines the mutable data model of a prefab layout:
// module instances placed from catalog definitions, their typed connectors,
// and the connection graph that links connectors across modules.
//
// A Composition owns every Module by id. Modules own their Connectors; a
// connector refers back to its module only by id. Connections are created
// exclusively through the NodeManager so that connector occupancy and the
// graph never disagree.
package composition
