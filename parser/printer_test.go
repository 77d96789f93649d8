package parser

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Fabii137/Whacky/lexer"
)

func TestPrintASTJSON(t *testing.T) {
	tokens, err := lexer.New("gimme x: number = 1 + 2; bye(x);").Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	prog, err := Make(tokens).Parse()
	if err != nil {
		t.Fatalf("Parse() raised an error: %v", err)
	}

	jsonStr, err := PrintASTJSON(prog)
	if err != nil {
		t.Fatalf("PrintASTJSON() raised an error: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("decoded %d statements, want 2", len(decoded))
	}
	if decoded[0]["type"] != "Gimme" || decoded[1]["type"] != "Bye" {
		t.Errorf("statement types = %v and %v, want Gimme and Bye", decoded[0]["type"], decoded[1]["type"])
	}
	if !strings.Contains(jsonStr, `"operator": "+"`) {
		t.Errorf("output misses the binary operator: %s", jsonStr)
	}
}
