package testutil

// Schemas is a small HCL manifest covering the keyword shapes decks
// exercise: section headers, fixed, slash-terminated, sized-by and data
// keywords.
const Schemas = `
keyword "RUNSPEC" {}
keyword "GRID" {}
keyword "PROPS" {}
keyword "SOLUTION" {}
keyword "SCHEDULE" {}

keyword "TITLE" {
  sections = ["RUNSPEC"]
  record {
    item "TEXT" {
      type = string
    }
  }
}

keyword "DIMENS" {
  sections = ["RUNSPEC"]
  record {
    item "NX" {
      type = int
    }
    item "NY" {
      type = int
    }
    item "NZ" {
      type = int
    }
  }
}

keyword "TABDIMS" {
  sections = ["RUNSPEC"]
  record {
    item "NTSFUN" {
      type    = int
      default = 1
    }
  }
}

keyword "PORO" {
  sections = ["GRID"]
  data {
    type    = double
    default = 0.1
  }
}

keyword "SWOF" {
  sections = ["PROPS"]
  size_from {
    keyword = "TABDIMS"
    item    = "NTSFUN"
  }
  data {
    type = double
  }
}

keyword "WELSPECS" {
  sections = ["SCHEDULE"]
  size     = "/"
  record {
    item "WELL" {
      type = string
    }
    item "GROUP" {
      type    = string
      default = "FIELD"
    }
    item "I" {
      type = int
    }
    item "J" {
      type = int
    }
  }
}
`
