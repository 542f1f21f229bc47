package model

import (
	"errors"
	"os"
	"testing"
)

func mustCreateModel(t *testing.T, fileName string) *Model {
	fileName = "../test/bpmn/" + fileName

	bpmnFile, err := os.Open(fileName)
	if err != nil {
		t.Fatalf("failed to open BPMN file %s: %v", fileName, err)
	}

	defer bpmnFile.Close()

	model, err := New(bpmnFile)
	if err != nil {
		t.Fatalf("failed to parse BPMN XML: %v", err)
	}

	return model
}

func mustFailCreateModel(t *testing.T, fileName string) *ParseError {
	fileName = "../test/bpmn/" + fileName

	bpmnFile, err := os.Open(fileName)
	if err != nil {
		t.Fatalf("failed to open BPMN file %s: %v", fileName, err)
	}

	defer bpmnFile.Close()

	_, err = New(bpmnFile)
	return mustParseError(t, err)
}

func mustParseError(t *testing.T, err error) *ParseError {
	if err == nil {
		t.Fatal("expected a parse error")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected a parse error, but got %T: %v", err, err)
	}

	return parseErr
}
