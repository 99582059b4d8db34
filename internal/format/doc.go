// Package format holds the shared contract of the weight, input and label
// files: the error kinds every reader and writer reports, and the naming
// convention that ties a text file to its binary counterpart.
//
// Binary layouts (native byte order, no padding between sections):
//
//	weights:  int32 rows; int32 nnz; int32[rows*slabs+1] offsets;
//	          int32[nnz] columns; T[nnz] values
//	inputs:   int32 numInputs; int32 numFeatures; T[numInputs*numFeatures]
//	labels:   int32 rows; int32[rows]
package format
