// Package domain contains the core business entities for Ansera.
// It has no dependencies on other packages in this repository and
// defines the vocabulary shared by services, ports and adapters:
// documents and their retrieval scores, answer results, knowledge
// source names, and the training/conversation journal records.
package domain
