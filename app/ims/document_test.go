package ims

import (
	"testing"
)

func TestParseDocument(t *testing.T) {
	data := `<?xml version="1.0" encoding="utf-8"?>
<IMS>
  <Cursos>
    <Accao idAccao="101" idCaracterizacao="55">
      <DataInicio>05/03/2030 14:30</DataInicio>
      <Local>Lisboa</Local>
    </Accao>
    <Sessao ID="102" REF="55">
      <Inicio>2030-04-01</Inicio>
    </Sessao>
  </Cursos>
</IMS>`

	parser := NewParser()
	doc, err := parser.Run([]byte(data))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(doc.Roots) != 1 || doc.Roots[0].Name != "IMS" {
		t.Fatalf("Expected a single IMS root, got: %+v", doc.Roots)
	}

	var names []string
	doc.Walk(func(n *Node) {
		names = append(names, n.Name)
	})

	expected := []string{"IMS", "Cursos", "Accao", "DataInicio", "Local", "Sessao", "Inicio"}
	if len(names) != len(expected) {
		t.Fatalf("Expected %d nodes, got %d: %v", len(expected), len(names), names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("Expected node %d to be %s, got %s", i, expected[i], names[i])
		}
	}

	accao := doc.Roots[0].Child("Cursos").Child("Accao")
	if accao.Attr("idAccao") != "101" {
		t.Errorf("Expected idAccao '101', got '%s'", accao.Attr("idAccao"))
	}
	if accao.ChildText("DataInicio") != "05/03/2030 14:30" {
		t.Errorf("Expected DataInicio '05/03/2030 14:30', got '%s'", accao.ChildText("DataInicio"))
	}
	if accao.ChildText("Missing") != "" {
		t.Errorf("Expected empty text for missing child, got '%s'", accao.ChildText("Missing"))
	}
}

func TestParseDocumentDeclaredCharset(t *testing.T) {
	data := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><IMS><Local>A\xe7ores</Local></IMS>")

	doc, err := NewParser().Run(data)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if got := doc.Roots[0].ChildText("Local"); got != "Açores" {
		t.Errorf("Expected 'Açores', got '%s'", got)
	}
}

func TestParseDocumentRecoversTruncatedPayload(t *testing.T) {
	data := `<IMS><Accao idAccao="1"><DataInicio>01/01/2030</DataInicio></Accao><Accao idAccao="2"><Data`

	doc, err := NewParser().Run([]byte(data))
	if err != nil {
		t.Fatalf("Expected truncated document to be recovered, got: %v", err)
	}

	first := doc.Roots[0].Child("Accao")
	if first == nil || first.Attr("idAccao") != "1" {
		t.Fatalf("Expected first Accao to survive, got: %+v", first)
	}
	if first.ChildText("DataInicio") != "01/01/2030" {
		t.Errorf("Expected DataInicio '01/01/2030', got '%s'", first.ChildText("DataInicio"))
	}
	if !doc.Truncated {
		t.Errorf("Expected document with open elements to be marked truncated")
	}
}

func TestParseDocumentCompleteIsNotTruncated(t *testing.T) {
	doc, err := NewParser().Run([]byte(`<IMS><Accao idAccao="1"/></IMS>`))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if doc.Truncated {
		t.Errorf("Expected complete document not to be marked truncated")
	}
}

func TestParseInvalidDocument(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"whitespace", "   \n "},
		{"plain text", "invalid xml"},
		{"broken start", "<"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewParser().Run([]byte(tt.data)); err == nil {
				t.Error("Expected error for unparseable document")
			}
		})
	}
}
