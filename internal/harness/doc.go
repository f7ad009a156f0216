// Package harness runs projection scenarios.
//
// A scenario is a YAML file naming a schemas directory, a record document and
// expectations on the snapshot that projecting the record produces:
//
//	name: post_with_author
//	description: "to-one joins survive, to-many are hidden by default"
//	schemas: ../schemas
//	record:
//	  model: Post
//	  data: {id: 1, title: hello}
//	  associations:
//	    author: {data: {id: 7}}
//	expect:
//	  title: hello
//	  author: {id: 7}
//	absent: [comments]
//
// Run compiles the schemas, builds the record through record.Registry and
// evaluates the expectations. RunWithGolden additionally compares the
// canonical snapshot with a goldie fixture under testdata/golden.
package harness
