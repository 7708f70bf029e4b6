package services

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"

	completionProbe  = "Generate a joke!"
	embeddingProbe   = "This is a test"
	translationProbe = "This is a test"
	translationLang  = "it"

	// LegacyIndexName is the index written by releases before the current
	// document layout.
	LegacyIndexName = "embeddings-index"
	// EmbeddingModel is the model the embeddings deployment must serve.
	EmbeddingModel = "text-embedding-ada-002"
	// LegacyImage still reads LegacyIndexName.
	LegacyImage = "fruocco/oai-embeddings:2023-03-27_25"
)

type DiagnosticResult struct {
	Component string
	Status    Status
	Message   string
	// Trace is the full error or panic trace, empty on success.
	Trace string
}

// Diagnostics probes each backend the page depends on. Each probe gets its
// own helper and a failure in one never stops the others.
type Diagnostics struct {
	newHelper func() Helper
	logger    *zap.Logger
}

func NewDiagnostics(newHelper func() Helper, logger *zap.Logger) *Diagnostics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Diagnostics{newHelper: newHelper, logger: logger}
}

func (d *Diagnostics) Run(ctx context.Context) []DiagnosticResult {
	results := []DiagnosticResult{
		d.probe(ctx, "completion", checkCompletion, completionFailure),
		d.probe(ctx, "embeddings", checkEmbeddings, embeddingsFailure),
		d.probe(ctx, "translation", checkTranslation, translationFailure),
		d.probe(ctx, "vector store", checkVectorStore, vectorStoreFailure),
	}
	for _, r := range results {
		if r.Status != StatusSuccess {
			d.logger.Warn("deployment check failed",
				zap.String("component", r.Component),
				zap.String("status", string(r.Status)),
				zap.String("trace", r.Trace))
		}
	}
	return results
}

type checkFunc func(context.Context, Helper) (DiagnosticResult, error)

// probe runs check against a fresh helper. An error or a panic, including
// one while building the helper, becomes an error result carrying the
// component's failure message and the full trace.
func (d *Diagnostics) probe(ctx context.Context, component string, check checkFunc, failureMessage func(Helper) string) (res DiagnosticResult) {
	var h Helper
	defer func() {
		if r := recover(); r != nil {
			res = DiagnosticResult{
				Status:  StatusError,
				Message: describeFailure(component, h, failureMessage),
				Trace:   fmt.Sprintf("panic: %v\n%s", r, debug.Stack()),
			}
		}
		res.Component = component
	}()

	h = d.newHelper()
	res, err := check(ctx, h)
	if err != nil {
		return failure(describeFailure(component, h, failureMessage), err)
	}
	return res
}

// describeFailure falls back to a generic message when there is no helper to
// describe or describing it panics.
func describeFailure(component string, h Helper, failureMessage func(Helper) string) (msg string) {
	msg = fmt.Sprintf("The %s check could not run.", component)
	if h == nil {
		return msg
	}
	defer func() { _ = recover() }()
	return failureMessage(h)
}

func checkCompletion(ctx context.Context, h Helper) (DiagnosticResult, error) {
	if _, err := h.GetCompletion(ctx, completionProbe); err != nil {
		return DiagnosticResult{}, err
	}
	return success("LLM is working!"), nil
}

func completionFailure(h Helper) string {
	return fmt.Sprintf(`LLM is not working.
Please check you have a deployment named %s in your Azure OpenAI resource %s.
If you are using an instructions based deployment (text-davinci-003), set OPENAI_DEPLOYMENT_TYPE=Text or remove OPENAI_DEPLOYMENT_TYPE.
If you are using a chat based deployment (gpt-35-turbo, gpt-4 or gpt-4-32k), set OPENAI_DEPLOYMENT_TYPE=Chat.
Then restart your application.`, h.DeploymentName(), h.APIBase())
}

func checkEmbeddings(ctx context.Context, h Helper) (DiagnosticResult, error) {
	if _, err := h.EmbedDocuments(ctx, []string{embeddingProbe}); err != nil {
		return DiagnosticResult{}, err
	}
	return success("Embedding is working!"), nil
}

func embeddingsFailure(h Helper) string {
	return fmt.Sprintf(`Embedding model is not working.
Please check you have a deployment named "%s" for the "%s" model in your Azure OpenAI resource %s.
Then restart your application.`, EmbeddingModel, EmbeddingModel, h.APIBase())
}

func checkTranslation(ctx context.Context, h Helper) (DiagnosticResult, error) {
	if _, err := h.Translate(ctx, translationProbe, translationLang); err != nil {
		return DiagnosticResult{}, err
	}
	return success("Translation is working!"), nil
}

func translationFailure(Helper) string {
	return `Translation model is not working.
Please check your Azure Translator key in the App Settings.
Then restart your application.`
}

// checkVectorStore reports the managed search failure itself; every other
// error in this step falls through to vectorStoreFailure.
func checkVectorStore(ctx context.Context, h Helper) (DiagnosticResult, error) {
	store := h.VectorStore()
	if store.Kind() != StoreKindAzureSearch {
		exists, err := store.CheckExistingIndex(ctx, LegacyIndexName)
		if err != nil {
			return DiagnosticResult{}, err
		}
		if exists {
			return DiagnosticResult{Status: StatusWarning, Message: fmt.Sprintf(`Seems like you're using a Redis with an old data structure.
If you want to use the new data structure, go to "Add Document" -> "Add documents in Batch" and click on "Convert all files and add embeddings" to reprocess your documents.
To remove this warning, delete the index "%s" from your Redis.
If you prefer to keep the old data structure, point your Web App container image to %s.`, LegacyIndexName, LegacyImage)}, nil
		}
		return success("Redis is working!"), nil
	}

	if _, err := store.IndexExists(ctx); err != nil {
		return failure(`Azure Cognitive Search is not working.
Please check your Azure Cognitive Search service name and service key in the App Settings.
Then restart your application.`, err), nil
	}
	return success("Azure Cognitive Search is working!"), nil
}

func vectorStoreFailure(Helper) string {
	return `Redis is not working.
Please check your Redis connection string (REDIS_ADDRESS, REDIS_PASSWORD) in the App Settings.
Then restart your application.`
}

func success(message string) DiagnosticResult {
	return DiagnosticResult{Status: StatusSuccess, Message: message}
}

func failure(message string, err error) DiagnosticResult {
	return DiagnosticResult{Status: StatusError, Message: message, Trace: fmt.Sprintf("%+v", err)}
}
