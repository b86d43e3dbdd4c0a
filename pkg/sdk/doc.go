// Package policyqa embeds the policy question answering pipeline in a Go
// program: it ingests a directory of policy documents, keeps a persisted
// vector index next to it and answers questions with cited sources.
//
//	client, err := policyqa.New(ctx,
//	    policyqa.WithDocumentsDir("data"),
//	    policyqa.WithIndexDir("vector_db"),
//	)
//	if err != nil {
//	    return err
//	}
//	ans, _ := client.Ask(ctx, "Is accidental damage covered?")
//	fmt.Println(ans.Text)
//	fmt.Println(ans.Citations)
//
// Without WithEncoder the client uses the local hashing encoder, and without
// WithOpenAI it composes extractive answers from the retrieved clauses.
package policyqa
