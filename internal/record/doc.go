// Package record projects live record instances into plain snapshots.
//
// An Instance carries ordered data fields, a back-reference to its model
// Schema, optional Display configuration and association state. Project turns
// it into an ir.IRObject through a fixed pipeline:
//
//  1. materialize - clone related records into the output (joins shown only)
//  2. copy        - deep-clone every remaining own field
//  3. normalize   - replace related records with their own snapshots
//  4. filter      - drop relations the display did not ask for, then callables
//
// The pipeline is stateless across calls. Schemas are read-only once built and
// may be shared by concurrent projections.
package record
