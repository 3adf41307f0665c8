// Package hcldef loads keyword schemas from HCL manifests.
//
// A manifest holds any number of keyword blocks:
//
//	keyword "TABDIMS" {
//	  sections = ["RUNSPEC"]
//	  size     = 1
//
//	  record {
//	    item "NTSFUN" {
//	      type    = int
//	      default = 1
//	    }
//	  }
//	}
//
//	keyword "SWOF" {
//	  sections = ["PROPS"]
//	  size_from {
//	    keyword = "TABDIMS"
//	    item    = "NTSFUN"
//	  }
//	  data {
//	    type       = double
//	    dimensions = ["1", "1", "1", "Pressure"]
//	  }
//	}
//
// size is a record count or "/" for slash terminated keywords. A data block is
// shorthand for a single record holding one repeated numeric item.
package hcldef
