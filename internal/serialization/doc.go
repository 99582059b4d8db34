// Package serialization encodes slab-blocked weight matrices, dense input
// matrices and label vectors to their fixed binary layouts and decodes them
// back, either into fresh values or directly into a caller-supplied View.
//
// The layouts carry no magic, version or padding, and integers and values
// are stored in native byte order and width:
//
//	Weights:
//	  [int32 rows][int32 nnz]
//	  [int32 offsets, rows*slabs+1]
//	  [int32 columns, nnz]
//	  [T values, nnz]
//
//	Dense inputs:
//	  [int32 rows][int32 cols][T values, rows*cols]
//
//	Labels:
//	  [int32 rows][int32 values, rows]
//
// Files produced on one architecture are only readable on another with the
// same byte order.
//
// Decoding into a View is how many layers end up in one arena without any
// intermediate allocation:
//
//	region, err := a.Region(i)
//	if err != nil {
//	    return err
//	}
//	hdr, err := serialization.DecodeMatrixInto(data, region, layout)
package serialization
