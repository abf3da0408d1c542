// Package connection turns a (provider, config index, api type) selection
// into ready-to-use chat sessions.
//
// A [Manager] validates the selection against a [config.Store], resolves the
// API key through a [credentials.Resolver] and keeps the resulting [Params].
// Sessions are only created by [Manager.CreateSession], so every [Session]
// starts from a validated configuration:
//
//	mgr := connection.NewManager(store)
//	if _, err := mgr.Configure("ACME", 0, ai.APITypeOpenAI); err != nil {
//		return err
//	}
//	sess, err := mgr.CreateSession()
//	if err != nil {
//		return err
//	}
//	defer sess.Close()
//
//	reply, ok, err := sess.Send(ctx, "Hello")
//
// [Session.Send] is the only place where transport failures are absorbed:
// they are logged and reported as ok == false, with the cause available from
// [Session.LastError].
package connection
